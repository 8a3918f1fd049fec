package capture

import (
	"fmt"

	"github.com/google/gopacket/pcap"
)

// ListInterfaces enumerates the capture devices available to libpcap. The CLI
// uses it to print the available devices when a requested interface does not
// exist.
func ListInterfaces() ([]pcap.Interface, error) {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}
	return devices, nil
}
