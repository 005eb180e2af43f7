package enrichment

import (
	"strings"

	"github.com/mssola/user_agent"
)

// Client describes the software behind a request, for access logs.
type Client struct {
	Browser string
	Version string
	OS      string
	Device  string
}

func ParseUserAgent(uaString string) Client {
	if strings.TrimSpace(uaString) == "" {
		return Client{Browser: "unknown", OS: "unknown", Device: "unknown"}
	}

	ua := user_agent.New(uaString)
	browser, version := ua.Browser()

	device := "desktop"
	switch {
	case ua.Bot():
		device = "bot"
	case ua.Mobile():
		device = "mobile"
	case ua.OS() == "" && ua.Mozilla() == "":
		// curl, HTTP libraries and other scripted clients
		device = "api-client"
	}

	osName := ua.OS()
	if osName == "" {
		osName = "unknown"
	}

	return Client{
		Browser: browser,
		Version: version,
		OS:      osName,
		Device:  device,
	}
}

func (c Client) String() string {
	name := c.Browser
	if c.Version != "" {
		name += "/" + c.Version
	}
	return name + " (" + c.OS + ", " + c.Device + ")"
}
