package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/favbox/limitchain/components/document"
)

const sample = `前言段落

# 标题一

第一节内容。

## 子标题

第二节内容。

` + "```sh\n# 这不是标题\necho hi\n```" + `

> # 引用中的标题

Setext 标题
===

最后一节。
`

func TestLoadSections(t *testing.T) {
	ctx := context.Background()
	l, err := NewLoader(ctx, nil)
	require.NoError(t, err)

	docs, err := l.LoadFromMemory(ctx, sample)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	assert.Equal(t, "前言段落", docs[0].Content)
	assert.Equal(t, "", docs[0].MetaData[MetaKeyHeading])
	assert.Equal(t, 0, docs[0].MetaData[MetaKeyLevel])

	assert.Equal(t, "# 标题一\n\n第一节内容。", docs[1].Content)
	assert.Equal(t, "标题一", docs[1].MetaData[MetaKeyHeading])
	assert.Equal(t, 1, docs[1].MetaData[MetaKeyLevel])

	assert.Equal(t, "子标题", docs[2].MetaData[MetaKeyHeading])
	assert.Equal(t, 2, docs[2].MetaData[MetaKeyLevel])
	assert.Contains(t, docs[2].Content, "# 这不是标题")
	assert.Contains(t, docs[2].Content, "> # 引用中的标题")

	assert.Equal(t, "Setext 标题", docs[3].MetaData[MetaKeyHeading])
	assert.Equal(t, 1, docs[3].MetaData[MetaKeyLevel])
	assert.Equal(t, "Setext 标题\n===\n\n最后一节。", docs[3].Content)

	for _, d := range docs {
		assert.NotEmpty(t, d.ID)
		assert.Equal(t, "", d.Source())
	}
}

func TestLoadWithoutHeadings(t *testing.T) {
	ctx := context.Background()
	l, err := NewLoader(ctx, nil)
	require.NoError(t, err)

	docs, err := l.LoadFromMemory(ctx, "just text\n\nmore text")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "just text\n\nmore text", docs[0].Content)

	docs, err = l.LoadFromMemory(ctx, "  \n")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadMarkdownFile(t *testing.T) {
	ctx := context.Background()
	l, err := NewLoader(ctx, nil)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("# hello\nworld\n"), 0o644))

	docs, err := l.LoadFromPath(ctx, path, document.WithExtraMeta(map[string]any{"heading": "ignored", "tenant": "t1"}))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, path, docs[0].Source())
	assert.Equal(t, "hello", docs[0].MetaData[MetaKeyHeading])
	assert.Equal(t, "t1", docs[0].MetaData["tenant"])

	bad := filepath.Join(dir, "bad.md")
	require.NoError(t, os.WriteFile(bad, []byte{'#', ' ', 0xff}, 0o644))
	docs, err = l.LoadFromPath(ctx, bad)
	assert.Nil(t, docs)
	assert.ErrorIs(t, err, document.ErrInvalidUTF8)
}
