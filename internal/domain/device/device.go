// Package device classifies clients from their User-Agent header.
package device

import (
	"strings"

	"github.com/okian/bgxboard/internal/domain/model"
)

// mobileMarkers are User-Agent fragments of phone and tablet browsers.
var mobileMarkers = []string{
	"mobi",
	"android",
	"iphone",
	"ipad",
	"ipod",
	"opera mini",
	"iemobile",
	"blackberry",
}

// Classify returns mobile for phone and tablet browsers, desktop for any
// other non-empty User-Agent and unknown when none was sent.
func Classify(userAgent string) model.DeviceType {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return model.DeviceUnknown
	}
	for _, m := range mobileMarkers {
		if strings.Contains(ua, m) {
			return model.DeviceMobile
		}
	}
	return model.DeviceDesktop
}
