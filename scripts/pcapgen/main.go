// pcapgen generates a synthetic capture file with a known mix of inbound,
// outbound, broadcast, and transit frames relative to a chosen "local" MAC.
// Replay it with `tcpgraph -r` to exercise the direction split end to end.
package main

import (
	"flag"
	"log"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

var (
	localMAC  = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	remoteMAC = net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA}
	otherMAC  = net.HardwareAddr{0x00, 0xAB, 0xCD, 0xEF, 0x01, 0x23}
	bcastMAC  = net.HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
)

func main() {
	outputFile := flag.String("o", "test.pcap", "Output pcap file path")
	packetCount := flag.Int("c", 1000, "Number of packets to generate")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	pcapWriter := pcapgo.NewWriter(f)
	if err := pcapWriter.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		log.Fatalf("Failed to write pcap header: %v", err)
	}

	rand.Seed(time.Now().UnixNano())

	log.Printf("Generating %d packets into %s (local MAC %s)...", *packetCount, *outputFile, localMAC)

	ts := time.Now()
	for i := 0; i < *packetCount; i++ {
		var srcMAC, dstMAC net.HardwareAddr
		switch i % 4 {
		case 0: // outbound
			srcMAC, dstMAC = localMAC, remoteMAC
		case 1: // inbound
			srcMAC, dstMAC = remoteMAC, localMAC
		case 2: // broadcast from us
			srcMAC, dstMAC = localMAC, bcastMAC
		default: // transit
			srcMAC, dstMAC = remoteMAC, otherMAC
		}

		payloadSize := rand.Intn(1400) + 50

		ethLayer := &layers.Ethernet{
			SrcMAC:       srcMAC,
			DstMAC:       dstMAC,
			EthernetType: layers.EthernetTypeIPv4,
		}
		ipLayer := &layers.IPv4{
			SrcIP:    net.IP{10, 0, 0, byte(rand.Intn(254) + 1)},
			DstIP:    net.IP{10, 0, 1, byte(rand.Intn(254) + 1)},
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolTCP,
		}
		tcpLayer := &layers.TCP{
			SrcPort: layers.TCPPort(rand.Intn(65535-1024) + 1024),
			DstPort: layers.TCPPort(rand.Intn(65535-1024) + 1024),
			Seq:     rand.Uint32(),
			Window:  14600,
		}
		tcpLayer.SetNetworkLayerForChecksum(ipLayer)

		payload := make([]byte, payloadSize)
		rand.Read(payload)

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		if err := gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, tcpLayer, gopacket.Payload(payload)); err != nil {
			log.Fatalf("Failed to serialize packet: %v", err)
		}

		data := buf.Bytes()
		ts = ts.Add(time.Millisecond)
		ci := gopacket.CaptureInfo{
			Timestamp:     ts,
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := pcapWriter.WritePacket(ci, data); err != nil {
			log.Fatalf("Failed to write packet: %v", err)
		}
	}

	log.Println("Done.")
}
