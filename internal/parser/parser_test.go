package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storyteller-server/internal/parser"
)

func TestParse_NoHeader(t *testing.T) {
	content := "Once upon a time there was a little fox.\nIt lived in the forest."

	meta, body := parser.Parse(content)

	assert.Empty(t, meta)
	assert.Equal(t, content, body)
}

func TestParse_HeaderAndBody(t *testing.T) {
	content := "Title: The Little Fox\nAuthor: Jane Doe\nGenre: Fable\n\nOnce upon a time.\n\nThe end."

	meta, body := parser.Parse(content)

	assert.Equal(t, "The Little Fox", meta["title"])
	assert.Equal(t, "Jane Doe", meta["author"])
	assert.Equal(t, "Fable", meta["genre"])
	assert.Equal(t, "Once upon a time.\n\nThe end.", body)
}

func TestParse_ValueWithColon(t *testing.T) {
	// Значение может само содержать двоеточия: делим только по первому
	content := "Cover: https://example.com/cover.jpg\nDuration: 5:30\n\nBody text."

	meta, body := parser.Parse(content)

	assert.Equal(t, "https://example.com/cover.jpg", meta["cover"])
	assert.Equal(t, "5:30", meta["duration"])
	assert.Equal(t, "Body text.", body)
}

func TestParse_StopsAtNonMatchingLine(t *testing.T) {
	// Строка с нераспознанным ключом начинает тело
	content := "Title: A Story\nChapter 1: The Beginning\nMore text."

	meta, body := parser.Parse(content)

	assert.Equal(t, "A Story", meta["title"])
	assert.Equal(t, "Chapter 1: The Beginning\nMore text.", body)
}

func TestParse_LineWithoutColonEndsHeader(t *testing.T) {
	content := "Author: Someone\nJust a plain line\nRest of the story."

	meta, body := parser.Parse(content)

	assert.Equal(t, "Someone", meta["author"])
	assert.Equal(t, "Just a plain line\nRest of the story.", body)
}

func TestParse_EmptyInput(t *testing.T) {
	meta, body := parser.Parse("")

	assert.Empty(t, meta)
	assert.Empty(t, body)
}

func TestParseStory_Defaults(t *testing.T) {
	meta, body := parser.ParseStory("Just a story with no header at all.")

	assert.Equal(t, parser.DefaultTitle, meta.Title)
	assert.Equal(t, parser.DefaultAuthor, meta.Author)
	assert.Equal(t, parser.DefaultGenre, meta.Genre)
	assert.Equal(t, parser.DefaultCover, meta.Cover)
	assert.Equal(t, parser.DefaultDuration, meta.Duration)
	assert.Equal(t, parser.DefaultDescription, meta.Description)
	assert.Empty(t, meta.Audio)
	assert.Equal(t, "Just a story with no header at all.", body)
}

func TestParseStory_HeaderOverridesDefaults(t *testing.T) {
	content := "Title: Ocean Mystery\nAudio: /stories/ocean-mystery.mp3\n\nDeep below the waves."

	meta, body := parser.ParseStory(content)

	assert.Equal(t, "Ocean Mystery", meta.Title)
	assert.Equal(t, "/stories/ocean-mystery.mp3", meta.Audio)
	assert.Equal(t, parser.DefaultAuthor, meta.Author)
	assert.Equal(t, "Deep below the waves.", body)
}

func TestParseStory_EmptyValueFallsBackToDefault(t *testing.T) {
	content := "Title:\n\nBody."

	meta, _ := parser.ParseStory(content)

	assert.Equal(t, parser.DefaultTitle, meta.Title)
}
