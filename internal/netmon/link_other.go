//go:build !linux

package netmon

func linkKind(int) string { return "" }

func isWireless(string) bool { return false }
