package model_test

import (
	"testing"

	"github.com/okian/bgxboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRiderResult_FullName(t *testing.T) {
	Convey("Given rider names", t, func() {
		So(model.RiderResult{FirstName: "Ivan", LastName: "Petrov"}.FullName(), ShouldEqual, "Ivan Petrov")
		So(model.RiderResult{FirstName: "Ivan"}.FullName(), ShouldEqual, "Ivan")
		So(model.RiderResult{LastName: "Petrov"}.FullName(), ShouldEqual, "Petrov")
		So(model.RiderResult{}.FullName(), ShouldEqual, "")
	})
}

func TestParsePage(t *testing.T) {
	Convey("Given raw page names", t, func() {
		Convey("When the page is tracked", func() {
			p, ok := model.ParsePage(" Home ")
			So(ok, ShouldBeTrue)
			So(p, ShouldEqual, model.PageHome)

			p, ok = model.ParsePage("stats")
			So(ok, ShouldBeTrue)
			So(p, ShouldEqual, model.PageStats)
		})

		Convey("When the page is unknown", func() {
			_, ok := model.ParsePage("admin")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestParseDeviceType(t *testing.T) {
	Convey("Given raw device values", t, func() {
		So(model.ParseDeviceType("mobile"), ShouldEqual, model.DeviceMobile)
		So(model.ParseDeviceType("DESKTOP"), ShouldEqual, model.DeviceDesktop)
		So(model.ParseDeviceType("unknown"), ShouldEqual, model.DeviceUnknown)
		So(model.ParseDeviceType(""), ShouldEqual, model.DeviceUnknown)
		So(model.ParseDeviceType("tablet"), ShouldEqual, model.DeviceUnknown)
	})
}

func TestVisitEvent_Device(t *testing.T) {
	Convey("Given a legacy event without a device type", t, func() {
		e := model.VisitEvent{Timestamp: "2025-05-01T10:00:00Z", Page: model.PageHome}

		Convey("Then it reads as unknown", func() {
			So(e.Device(), ShouldEqual, model.DeviceUnknown)
		})
	})
}
