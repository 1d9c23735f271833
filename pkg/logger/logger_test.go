package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithOutput(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging an info record with fields", func() {
			Named("csv-source").Info(ctx, "loaded category", String("category", "expert"), Int("rows", 3))

			var rec map[string]any
			So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)

			Convey("Then the record carries message, fields, component and source", func() {
				So(rec["msg"], ShouldEqual, "loaded category")
				So(rec["category"], ShouldEqual, "expert")
				So(rec["rows"], ShouldEqual, float64(3))
				So(rec["component"], ShouldEqual, "csv-source")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Error(ctx, "shown", Error(errors.New("boom")))

			Convey("Then only the error record is written", func() {
				out := buf.String()
				So(out, ShouldNotContainSubstring, "hidden")
				So(out, ShouldContainSubstring, "shown")
				So(out, ShouldContainSubstring, "boom")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(Init(WithOutput(&bytes.Buffer{})), ShouldBeNil)

		for _, lvl := range []string{"debug", "info", "", "warn", "WARNING", " error "} {
			So(SetLevelString(lvl), ShouldBeNil)
		}

		err := SetLevelString("verbose")
		So(err, ShouldNotBeNil)
		So(strings.Contains(err.Error(), "verbose"), ShouldBeTrue)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()

		Convey("Then every method is safe to call", func() {
			So(func() {
				ctx := context.Background()
				l.Debug(ctx, "d")
				l.Info(ctx, "i")
				l.Warn(ctx, "w")
				l.Error(ctx, "e")
				l.Fatal(ctx, "f")
				l.Named("x").Info(ctx, "named")
			}, ShouldNotPanic)
		})
	})
}
