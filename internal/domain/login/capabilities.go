package login

// Capabilities describes which login flows a platform can run.
type Capabilities struct {
	SilentCode     bool
	ProfileConsent bool
	PhoneLogin     bool
	DeviceFallback bool
}

// 各平台的登录能力
var platformCapabilities = map[string]Capabilities{
	"wechat": {SilentCode: true, ProfileConsent: true, PhoneLogin: true},
	"device": {DeviceFallback: true},
	"web":    {PhoneLogin: true},
}

// CapabilitiesFor returns the capability descriptor for a platform name.
func CapabilitiesFor(platform string) (Capabilities, bool) {
	caps, ok := platformCapabilities[platform]
	return caps, ok
}

// Platforms lists the known platform names.
func Platforms() []string {
	names := make([]string, 0, len(platformCapabilities))
	for name := range platformCapabilities {
		names = append(names, name)
	}
	return names
}
