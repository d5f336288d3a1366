package version

import (
	"fmt"

	"github.com/Masterminds/semver"
)

var (
	// Version contains the current version of reachd
	Version = "dev"

	// CommitHash contains the current git commit hash
	CommitHash = "unknown"

	// BuildTime contains the time of build
	BuildTime = "unknown"
)

// ProtocolVersion is the version of the WebSocket message format. Clients
// with the same major version can talk to this server.
const ProtocolVersion = "1.0.0"

// String returns the one-line banner printed by -version.
func String() string {
	return fmt.Sprintf("reachd version %s (commit: %s, built at: %s, protocol: %s)",
		Version, CommitHash, BuildTime, ProtocolVersion)
}

// ProtocolCompatible reports whether a client speaking clientVersion can use
// this server's protocol.
func ProtocolCompatible(clientVersion string) (bool, error) {
	client, err := semver.NewVersion(clientVersion)
	if err != nil {
		return false, fmt.Errorf("invalid protocol version %q: %w", clientVersion, err)
	}

	server := semver.MustParse(ProtocolVersion)
	c, err := semver.NewConstraint(fmt.Sprintf("^%d.0.0", server.Major()))
	if err != nil {
		return false, err
	}
	if !c.Check(client) {
		return false, nil
	}
	// A newer minor may rely on messages this server does not send.
	return !client.GreaterThan(server) || client.Minor() == server.Minor(), nil
}
