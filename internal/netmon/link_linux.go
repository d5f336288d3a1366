//go:build linux

package netmon

import (
	"os"
	"path/filepath"

	"github.com/vishvananda/netlink"
)

// linkKind returns the netlink link type, e.g. "device", "wireguard", "veth".
func linkKind(index int) string {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return ""
	}
	return link.Type()
}

func isWireless(name string) bool {
	_, err := os.Stat(filepath.Join("/sys/class/net", name, "wireless"))
	return err == nil
}
