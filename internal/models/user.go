package models

type User struct {
	BaseModel
	Email        string  `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string  `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string  `json:"-" gorm:"type:text;not null"`
	AvatarURL    *string `json:"avatarUrl,omitempty" gorm:"type:text"`

	GroupMemberships []GroupMembership `json:"-" gorm:"foreignKey:UserID"`
	Notifications    []Notification    `json:"-" gorm:"foreignKey:UserID"`
}

// PublicUser is the projection embedded in group, message and friend payloads.
type PublicUser struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
