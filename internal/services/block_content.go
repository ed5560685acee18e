package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/spacehub/backend/internal/models"
)

// Block content payloads are a discriminated union keyed by block type.
// The shape is enforced here, at the boundary; storage keeps the validated
// payload as an opaque JSON column.
type ParagraphContent struct {
	Text string `json:"text"`
}

type HeadingContent struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

type ListContent struct {
	Type  string   `json:"type"`
	Items []string `json:"items"`
}

type CodeContent struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

type QuoteContent struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

// DefaultBlockContent returns the seed payload for a freshly inserted block.
func DefaultBlockContent(blockType models.BlockType) datatypes.JSON {
	var content any
	switch blockType {
	case models.BlockTypeParagraph:
		content = ParagraphContent{Text: ""}
	case models.BlockTypeHeading:
		content = HeadingContent{Text: "", Level: 1}
	case models.BlockTypeList:
		content = ListContent{Type: "unordered", Items: []string{""}}
	case models.BlockTypeCode:
		content = CodeContent{Code: "", Language: ""}
	case models.BlockTypeQuote:
		content = QuoteContent{Text: "", Author: ""}
	default:
		content = map[string]any{}
	}

	raw, _ := json.Marshal(content)
	return datatypes.JSON(raw)
}

// ValidateBlockContent checks a raw payload against the shape declared by
// blockType and returns the normalized encoding. Unknown fields are
// rejected so a HEADING payload cannot smuggle LIST items and vice versa.
func ValidateBlockContent(blockType models.BlockType, raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 {
		return DefaultBlockContent(blockType), nil
	}

	switch blockType {
	case models.BlockTypeParagraph:
		var content ParagraphContent
		if err := strictUnmarshal(raw, &content); err != nil {
			return nil, err
		}
		return mustEncode(content), nil

	case models.BlockTypeHeading:
		var content HeadingContent
		if err := strictUnmarshal(raw, &content); err != nil {
			return nil, err
		}
		if content.Level < 1 || content.Level > 3 {
			return nil, fmt.Errorf("heading level must be 1, 2 or 3")
		}
		return mustEncode(content), nil

	case models.BlockTypeList:
		var content ListContent
		if err := strictUnmarshal(raw, &content); err != nil {
			return nil, err
		}
		if content.Type != "ordered" && content.Type != "unordered" {
			return nil, fmt.Errorf("list type must be ordered or unordered")
		}
		if content.Items == nil {
			return nil, fmt.Errorf("list items are required")
		}
		return mustEncode(content), nil

	case models.BlockTypeCode:
		var content CodeContent
		if err := strictUnmarshal(raw, &content); err != nil {
			return nil, err
		}
		return mustEncode(content), nil

	case models.BlockTypeQuote:
		var content QuoteContent
		if err := strictUnmarshal(raw, &content); err != nil {
			return nil, err
		}
		return mustEncode(content), nil

	case models.BlockTypeDivider:
		var content map[string]any
		if err := json.Unmarshal(raw, &content); err != nil {
			return nil, fmt.Errorf("malformed block content: %w", err)
		}
		if len(content) != 0 {
			return nil, fmt.Errorf("divider blocks carry no content")
		}
		return datatypes.JSON([]byte("{}")), nil

	default:
		return nil, fmt.Errorf("unknown block type %q", blockType)
	}
}

func strictUnmarshal(raw json.RawMessage, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("malformed block content: %w", err)
	}
	return nil
}

func mustEncode(content any) datatypes.JSON {
	raw, _ := json.Marshal(content)
	return datatypes.JSON(raw)
}
