package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/favbox/limitchain/schema"
)

func TestConvLoaderCallback(t *testing.T) {
	docs := []*schema.Document{{ID: "1", Content: "hello"}}

	assert.NotNil(t, ConvLoaderCallbackInput(&LoaderCallbackInput{}))
	assert.Equal(t, "notes.md", ConvLoaderCallbackInput("notes.md").Source)
	assert.Nil(t, ConvLoaderCallbackInput(1))

	assert.NotNil(t, ConvLoaderCallbackOutput(&LoaderCallbackOutput{}))
	assert.Equal(t, docs, ConvLoaderCallbackOutput(docs).Docs)
	assert.Nil(t, ConvLoaderCallbackOutput("x"))
}

func TestConvSplitterCallback(t *testing.T) {
	docs := []*schema.Document{{ID: "1", Content: "hello"}}

	assert.NotNil(t, ConvSplitterCallbackInput(&SplitterCallbackInput{}))
	assert.Equal(t, docs, ConvSplitterCallbackInput(docs).Input)
	assert.Nil(t, ConvSplitterCallbackInput("x"))

	assert.NotNil(t, ConvSplitterCallbackOutput(&SplitterCallbackOutput{}))
	assert.Equal(t, docs, ConvSplitterCallbackOutput(docs).Output)
	assert.Nil(t, ConvSplitterCallbackOutput(1))
}
