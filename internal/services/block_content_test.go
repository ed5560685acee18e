package services

import (
	"encoding/json"
	"testing"

	"github.com/spacehub/backend/internal/models"
)

func TestDefaultBlockContent(t *testing.T) {
	for _, blockType := range []models.BlockType{
		models.BlockTypeParagraph,
		models.BlockTypeHeading,
		models.BlockTypeList,
		models.BlockTypeCode,
		models.BlockTypeQuote,
		models.BlockTypeDivider,
	} {
		raw := DefaultBlockContent(blockType)
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("default %s content is not valid JSON: %v", blockType, err)
		}
		if _, err := ValidateBlockContent(blockType, json.RawMessage(raw)); err != nil {
			t.Fatalf("default %s content must pass its own validator: %v", blockType, err)
		}
	}
}

func TestValidateBlockContent(t *testing.T) {
	valid := []struct {
		name      string
		blockType models.BlockType
		raw       string
	}{
		{"paragraph", models.BlockTypeParagraph, `{"text":"hello"}`},
		{"heading level 3", models.BlockTypeHeading, `{"text":"Title","level":3}`},
		{"ordered list", models.BlockTypeList, `{"type":"ordered","items":["a","b"]}`},
		{"code with language", models.BlockTypeCode, `{"code":"fmt.Println()","language":"go"}`},
		{"quote without author", models.BlockTypeQuote, `{"text":"said nobody"}`},
		{"empty divider", models.BlockTypeDivider, `{}`},
	}
	for _, tc := range valid {
		t.Run("accepts "+tc.name, func(t *testing.T) {
			if _, err := ValidateBlockContent(tc.blockType, json.RawMessage(tc.raw)); err != nil {
				t.Fatalf("expected valid content, got %v", err)
			}
		})
	}

	invalid := []struct {
		name      string
		blockType models.BlockType
		raw       string
	}{
		{"heading level 0", models.BlockTypeHeading, `{"text":"Title","level":0}`},
		{"heading level 4", models.BlockTypeHeading, `{"text":"Title","level":4}`},
		{"list without items", models.BlockTypeList, `{"type":"ordered"}`},
		{"list with bad type", models.BlockTypeList, `{"type":"bulleted","items":[]}`},
		{"foreign field on paragraph", models.BlockTypeParagraph, `{"text":"x","items":["smuggled"]}`},
		{"divider with content", models.BlockTypeDivider, `{"text":"no"}`},
		{"not json at all", models.BlockTypeParagraph, `{"text":`},
		{"unknown type", models.BlockType("TABLE"), `{}`},
	}
	for _, tc := range invalid {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			if _, err := ValidateBlockContent(tc.blockType, json.RawMessage(tc.raw)); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}

	t.Run("empty payload falls back to the default", func(t *testing.T) {
		raw, err := ValidateBlockContent(models.BlockTypeHeading, nil)
		if err != nil {
			t.Fatalf("expected default fallback, got %v", err)
		}
		var content HeadingContent
		if err := json.Unmarshal(raw, &content); err != nil {
			t.Fatalf("default content must decode: %v", err)
		}
		if content.Level != 1 {
			t.Fatalf("expected default level 1, got %d", content.Level)
		}
	})
}
