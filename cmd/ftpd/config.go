package main

import (
	"fmt"

	"github.com/goftpd/ftpd"
	"github.com/goftpd/ftpd/fs"
)

// serverConfig is the TOML-shaped configuration loaded via configor. The
// string fields (ServerType, DefaultTransferType) are translated into
// ftpd.Settings' enums by toSettings.
type serverConfig struct {
	ListenAddr          string `toml:"listen_addr"`
	PublicHost          string `toml:"public_host"`
	IdleTimeout         int    `toml:"idle_timeout"`
	ConnectionTimeout   int    `toml:"connection_timeout"`
	Banner              string `toml:"banner"`
	ServerType          string `toml:"server_type"`
	DefaultTransferType string `toml:"default_transfer_type"`

	PassiveTransferPortRange struct {
		Start int `toml:"start"`
		End   int `toml:"end"`
	} `toml:"passive_transfer_port_range"`
}

// fileConfig is the root of the TOML document.
type fileConfig struct {
	Server serverConfig `toml:"server"`
	Users  []fs.Account `toml:"users"`
}

func (c *serverConfig) toSettings() (*ftpd.Settings, error) {
	settings := &ftpd.Settings{
		ListenAddr:        c.ListenAddr,
		PublicHost:        c.PublicHost,
		IdleTimeout:       c.IdleTimeout,
		ConnectionTimeout: c.ConnectionTimeout,
		Banner:            c.Banner,
	}

	if c.PassiveTransferPortRange.Start > 0 || c.PassiveTransferPortRange.End > 0 {
		settings.PassiveTransferPortRange = &ftpd.PortRange{
			Start: c.PassiveTransferPortRange.Start,
			End:   c.PassiveTransferPortRange.End,
		}
	}

	switch c.ServerType {
	case "", "ReadWrite":
		settings.ServerType = ftpd.ReadWrite
	case "ReadOnly":
		settings.ServerType = ftpd.ReadOnly
	default:
		return nil, fmt.Errorf("unknown server_type %q", c.ServerType)
	}

	switch c.DefaultTransferType {
	case "", "ASCII":
		settings.DefaultTransferType = ftpd.TransferTypeASCII
	case "Image", "Binary":
		settings.DefaultTransferType = ftpd.TransferTypeImage
	default:
		return nil, fmt.Errorf("unknown default_transfer_type %q", c.DefaultTransferType)
	}

	return settings, nil
}

const defaultConfigContents = `# goftpd configuration file

[server]
listen_addr = "0.0.0.0:2121"
# public_host = ""
idle_timeout = 900
connection_timeout = 30
banner = "goftpd FTP server"
server_type = "ReadWrite" # or "ReadOnly"

[server.passive_transfer_port_range]
start = 2122
end = 2200

[[users]]
user = "test"
pass = "test"
dir  = "test"
`
