// Command rdm-console is an interactive host console for rdm-responder.
//
// It connects to the host link, either at -addr or at a responder found via
// mDNS, and sends host commands typed at the prompt.
//
// Usage:
//
//	rdm-console [flags]
//
// Flags:
//
//	-addr string       Host link address (default "localhost:7770")
//	-find string       Find the responder with this UID via mDNS instead of -addr
//	-interface string  Network interface for mDNS (default all)
//	-src string        Controller UID used as the source of RDM requests
//	-timeout duration  Response timeout (default 2s)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/transport"
	"github.com/rdm-protocol/rdm-go/pkg/version"
)

var (
	addr    = flag.String("addr", fmt.Sprintf("localhost:%d", transport.DefaultPort), "Host link address")
	find    = flag.String("find", "", "Find the responder with this UID via mDNS")
	iface   = flag.String("interface", "", "Network interface for mDNS")
	src     = flag.String("src", "4744:00000001", "Controller UID for RDM requests")
	timeout = flag.Duration("timeout", 2*time.Second, "Response timeout")
)

func main() {
	flag.Parse()

	srcUID, err := rdm.ParseUID(*src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -src: %v\n", err)
		os.Exit(2)
	}

	target := *addr
	if *find != "" {
		target, err = locate(*find, *iface)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Discovery failed: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	client, err := transport.Dial(ctx, target)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connect failed: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	console, err := NewConsole(client, srcUID, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Fprintf(console.Stdout(), "Connected to %s\n", client.RemoteAddr())
	console.Run()
}

// locate browses for the responder with the given UID and returns its
// host link address.
func locate(uidStr, iface string) (string, error) {
	uid, err := rdm.ParseUID(uidStr)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	browser := discovery.NewMDNSBrowser(discovery.BrowserConfig{Interface: iface})
	svc, err := browser.Find(ctx, uid)
	if err != nil {
		return "", err
	}
	if err := version.CheckPeer(svc.Version); err != nil {
		return "", err
	}
	fmt.Printf("Found %s (%s, model %04x) at %s\n", svc.InstanceName, svc.UID, svc.ModelID, svc.Dial())
	return svc.Dial(), nil
}
