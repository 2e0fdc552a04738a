package models

import (
	"path"

	"github.com/kardianos/osext"
)

// AppConfig is the application's main configuration structure
type AppConfig struct {
	// The directory where Gigwish stores all of its data - defaults to the /data subdirectory
	// of the folder the Gigwish executable resides in
	DataDir string `json:"dataDir"`
	// The IP address to listen at - including the port number
	ListenAddress string `json:"listenAddress"`
	// Path to the performer's setlist text file. When set, the file is parsed and imported
	// into the song catalog on startup
	SetlistFile string `json:"setlistFile"`
	// The PIN that unlocks the admin view. Stored in plain text in the config file and
	// hashed on startup
	AdminPIN string `json:"adminPin"`
	// The restrictions for guests working with Gigwish
	Restrictions GuestRestrictionConfig `json:"restrictions"`
}

// GuestRestrictionConfig is the configuration for restricting some aspects of Gigwish
// for audience devices
type GuestRestrictionConfig struct {
	// MaxRequestsPerUser is the number of song requests a single device may submit
	MaxRequestsPerUser uint `json:"maxRequestsPerUser"`
	// Can be set to `true` to allow the same song to be requested twice
	AllowDuplicateRequests bool `json:"allowDuplicateRequests"`
	// A list of whitelisted device fingerprints. Requests from these devices have the
	// restrictions lifted - intended for the performer's own device
	FingerprintWhitelist []string `json:"fingerprintWhitelist"`
}

// GetDefaultConfig returns the default configuration values for the application
func GetDefaultConfig() (*AppConfig, error) {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		return nil, err
	}
	return &AppConfig{
		DataDir:       path.Join(execDir, "data"),
		ListenAddress: ":3000",
		AdminPIN:      "1234",
		Restrictions: GuestRestrictionConfig{
			MaxRequestsPerUser:   3,
			FingerprintWhitelist: []string{},
		},
	}, nil
}
