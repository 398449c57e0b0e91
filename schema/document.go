package schema

const (
	// 文档来源键名，加载器写入文件路径
	docMetaDataKeySource = "_source"

	// 切分片段的来源文档 ID
	docMetaDataKeySourceID = "_source_id"

	// 切分片段在来源文档中的序号
	docMetaDataKeyChunkIndex = "_chunk_index"

	// 合并文档的来源文档 ID 列表
	docMetaDataKeyMerge = "merge"
)

// Document 文档数据结构，包含文本内容和元数据。
type Document struct {
	// ID 文档的唯一标识符
	ID string `json:"id"`

	// Content 文档的文本内容
	Content string `json:"content"`

	// MetaData 文档元数据，保存来源、合并与切分等信息
	MetaData map[string]any `json:"meta_data"`
}

// String 返回文档的文本内容。
func (d *Document) String() string {
	return d.Content
}

func (d *Document) setMeta(key string, value any) *Document {
	if d.MetaData == nil {
		d.MetaData = make(map[string]any)
	}

	d.MetaData[key] = value

	return d
}

// WithSource 设置文档来源。
func (d *Document) WithSource(source string) *Document {
	return d.setMeta(docMetaDataKeySource, source)
}

// Source 获取文档来源，未设置时返回空字符串。
func (d *Document) Source() string {
	s, _ := d.MetaData[docMetaDataKeySource].(string)
	return s
}

// WithMergedFrom 记录合并文档的来源文档 ID 列表。
func (d *Document) WithMergedFrom(ids []string) *Document {
	return d.setMeta(docMetaDataKeyMerge, ids)
}

// MergedFrom 获取合并来源文档 ID 列表。
func (d *Document) MergedFrom() []string {
	ids, _ := d.MetaData[docMetaDataKeyMerge].([]string)
	return ids
}

// WithChunkOf 记录切分片段的来源文档 ID 与序号。
func (d *Document) WithChunkOf(sourceID string, index int) *Document {
	d.setMeta(docMetaDataKeySourceID, sourceID)
	return d.setMeta(docMetaDataKeyChunkIndex, index)
}

// ChunkOf 获取切分片段的来源文档 ID 与序号，不是切分片段时 ok 为 false。
func (d *Document) ChunkOf() (sourceID string, index int, ok bool) {
	sourceID, ok = d.MetaData[docMetaDataKeySourceID].(string)
	if !ok {
		return "", 0, false
	}

	index, ok = d.MetaData[docMetaDataKeyChunkIndex].(int)
	return sourceID, index, ok
}
