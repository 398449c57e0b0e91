package schema

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDocument(t *testing.T) {
	Convey("文档元数据", t, func() {
		d := &Document{ID: "1", Content: "hello"}

		So(d.String(), ShouldEqual, "hello")
		So(d.Source(), ShouldEqual, "")
		So(d.MergedFrom(), ShouldBeNil)

		_, _, ok := d.ChunkOf()
		So(ok, ShouldBeFalse)

		d.WithSource("a.md").WithMergedFrom([]string{"x", "y"}).WithChunkOf("src", 2)

		So(d.Source(), ShouldEqual, "a.md")
		So(d.MergedFrom(), ShouldResemble, []string{"x", "y"})

		id, idx, ok := d.ChunkOf()
		So(ok, ShouldBeTrue)
		So(id, ShouldEqual, "src")
		So(idx, ShouldEqual, 2)
	})
}
