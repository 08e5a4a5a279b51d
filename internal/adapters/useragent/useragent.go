package useragent

import (
	"strings"

	browser "github.com/itzngga/fake-useragent"
)

// Default is the mini-app webview agent used when randomization is off.
const Default = "Mozilla/5.0 (Linux; Android 13; Pixel 7 Build/TQ3A.230805.001; wv) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/126.0.6478.134 Mobile Safari/537.36"

// Source returns a user agent string.
type Source func() string

func Chrome() string {
	return browser.Chrome()
}

// Pick returns a value from source when randomize is set, falling back to Default
// whenever the source yields nothing.
func Pick(randomize bool, source Source) string {
	if !randomize {
		return Default
	}
	if source == nil {
		source = Chrome
	}
	if ua := strings.TrimSpace(source()); ua != "" {
		return ua
	}
	return Default
}
