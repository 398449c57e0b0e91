package prompt

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/favbox/limitchain/schema"
)

func TestFormatContent(t *testing.T) {
	Convey("按格式渲染内容", t, func() {
		vs := map[string]any{"bot_name": "Ashly"}

		Convey("FString", func() {
			out, err := FormatContent("act like {bot_name}", vs, schema.FString)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "act like Ashly")
		})

		Convey("GoTemplate", func() {
			out, err := FormatContent("act like {{.bot_name}}", vs, schema.GoTemplate)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "act like Ashly")

			_, err = FormatContent("act like {{.missing}}", vs, schema.GoTemplate)
			So(err, ShouldNotBeNil)
		})

		Convey("Jinja2", func() {
			out, err := FormatContent("act like {{ bot_name }}", vs, schema.Jinja2)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "act like Ashly")

			_, err = FormatContent(`{% include "/etc/passwd" %}`, vs, schema.Jinja2)
			So(err, ShouldNotBeNil)
		})

		Convey("未知格式", func() {
			_, err := FormatContent("x", vs, schema.FormatType(9))
			So(err, ShouldNotBeNil)
		})
	})
}
