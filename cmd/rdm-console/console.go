package main

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/hostlog"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// Link sends one host message and returns its response.
type Link interface {
	Transact(msg host.Message, timeout time.Duration) (host.Response, error)
}

var errQuit = errors.New("quit")

// timingCommands maps console names to the SET/GET command pairs.
var timingCommands = map[string][2]host.Command{
	"break":  {host.CmdSetBreakTime, host.CmdGetBreakTime},
	"mab":    {host.CmdSetMABTime, host.CmdGetMABTime},
	"listen": {host.CmdSetRDMBroadcastListen, host.CmdGetRDMBroadcastListen},
	"wait":   {host.CmdSetRDMWaitTime, host.CmdGetRDMWaitTime},
}

// Console runs host commands typed at a prompt.
type Console struct {
	link    Link
	src     rdm.UID
	timeout time.Duration
	tn      uint8
	out     io.Writer
	rl      *readline.Instance
}

// NewConsole creates a console with a readline prompt.
func NewConsole(link Link, src rdm.UID, timeout time.Duration) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "rdm> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	c := newConsole(link, src, timeout, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(link Link, src rdm.UID, timeout time.Duration, out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{link: link, src: src, timeout: timeout, out: out}
}

// Stdout returns a writer that does not disturb the prompt.
func (c *Console) Stdout() io.Writer { return c.out }

// Run reads commands until EOF or "quit".
func (c *Console) Run() {
	defer c.rl.Close()
	c.printHelp()

	for {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			return
		}
		if err := c.Execute(line); err != nil {
			if errors.Is(err, errQuit) {
				fmt.Fprintln(c.out, "Exiting...")
				return
			}
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
	}
}

// Execute runs one command line.
func (c *Console) Execute(line string) error {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
		return nil
	case "quit", "exit", "q":
		return errQuit
	case "echo":
		return c.cmdEcho(args)
	case "dmx":
		return c.cmdDMX(args)
	case "log":
		return c.cmdLog()
	case "write-log", "wl":
		return c.simple(host.CmdWriteLog, []byte(strings.Join(args, " ")))
	case "flags":
		return c.cmdFlags()
	case "reset":
		return c.simple(host.CmdResetDevice, nil)
	case "timing", "t":
		return c.cmdTiming(args)
	case "dub":
		return c.cmdDUB(args)
	case "mute":
		return c.cmdMute(rdm.PIDDiscMute, args)
	case "unmute":
		return c.cmdMute(rdm.PIDDiscUnMute, args)
	case "get", "g":
		return c.cmdRDM(rdm.CommandClassGet, args)
	case "set", "s":
		return c.cmdRDM(rdm.CommandClassSet, args)
	case "raw":
		return c.cmdRaw(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
RDM Console Commands:
  Host link:
    echo <text>                 - Echo text through the device
    dmx <v1> [v2 ...]           - Transmit a DMX frame (slot values 0-255)
    log                         - Read the device log
    write-log <text>            - Append text to the device log
    flags                       - Read and clear the device flags
    reset                       - Reset the device
    timing [name [value]]       - Show or set break, mab, listen, wait
    raw <command> [hex]         - Send any host command by name or code

  RDM:
    dub [lower upper]           - Discovery unique branch (default full range)
    mute <uid> | unmute <uid>   - Discovery mute / un-mute
    get <uid> <pid> [hex]       - GET a parameter
    set <uid> <pid> <hex>       - SET a parameter

  UIDs are mmmm:dddddddd, "all" for broadcast. PIDs are names or numbers.

    quit                        - Exit`)
}

func (c *Console) transact(cmd host.Command, payload []byte) (host.Response, error) {
	resp, err := c.link.Transact(host.Message{Command: cmd, Payload: payload}, c.timeout)
	if err != nil {
		return resp, err
	}
	if resp.Result != host.RCOK {
		return resp, fmt.Errorf("%s: %s", cmd, resp.Result)
	}
	return resp, nil
}

func (c *Console) simple(cmd host.Command, payload []byte) error {
	if _, err := c.transact(cmd, payload); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "OK")
	return nil
}

func (c *Console) cmdEcho(args []string) error {
	resp, err := c.transact(host.CmdEcho, []byte(strings.Join(args, " ")))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s\n", resp.Payload)
	return nil
}

func (c *Console) cmdDMX(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: dmx <v1> [v2 ...]")
	}
	slots := make([]byte, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 0, 8)
		if err != nil {
			return fmt.Errorf("bad slot value %q", a)
		}
		slots = append(slots, uint8(v))
	}
	return c.simple(host.CmdTxDMX, slots)
}

func (c *Console) cmdLog() error {
	resp, err := c.transact(host.CmdGetLog, nil)
	if err != nil {
		return err
	}
	if len(resp.Payload) == 0 {
		fmt.Fprintln(c.out, "(log empty)")
		return nil
	}
	fmt.Fprintf(c.out, "%s\n", strings.TrimRight(string(resp.Payload), "\x00\n"))
	return nil
}

func (c *Console) cmdFlags() error {
	resp, err := c.transact(host.CmdGetFlags, nil)
	if err != nil {
		return err
	}
	if len(resp.Payload) < 2 {
		fmt.Fprintln(c.out, "flags: none")
		return nil
	}
	f := hostlog.Flag(binary.LittleEndian.Uint16(resp.Payload))
	fmt.Fprintf(c.out, "flags: %s\n", f)
	return nil
}

func (c *Console) cmdTiming(args []string) error {
	if len(args) == 0 {
		for _, name := range []string{"break", "mab", "listen", "wait"} {
			if err := c.cmdTiming([]string{name}); err != nil {
				return err
			}
		}
		return nil
	}
	pair, ok := timingCommands[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("unknown timing parameter %q", args[0])
	}
	if len(args) == 1 {
		resp, err := c.transact(pair[1], nil)
		if err != nil {
			return err
		}
		if len(resp.Payload) != 2 {
			return fmt.Errorf("%s: bad payload length %d", pair[1], len(resp.Payload))
		}
		fmt.Fprintf(c.out, "%-6s %d\n", args[0], binary.LittleEndian.Uint16(resp.Payload))
		return nil
	}
	v, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return fmt.Errorf("bad value %q", args[1])
	}
	return c.simple(pair[0], binary.LittleEndian.AppendUint16(nil, uint16(v)))
}

func (c *Console) cmdDUB(args []string) error {
	lower, upper := rdm.UID{}, rdm.NewUID(0xffff, 0xffffffff)
	if len(args) == 2 {
		var err error
		if lower, err = rdm.ParseUID(args[0]); err != nil {
			return err
		}
		if upper, err = rdm.ParseUID(args[1]); err != nil {
			return err
		}
	} else if len(args) != 0 {
		return errors.New("usage: dub [lower upper]")
	}

	data := append(lower[:len(lower):len(lower)], upper[:]...)
	frame, err := c.request(rdm.NewUID(0xffff, 0xffffffff), rdm.CommandClassDiscovery, rdm.PIDDiscUniqueBranch, data)
	if err != nil {
		return err
	}
	resp, err := c.link.Transact(host.Message{Command: host.CmdRDMDUBRequest, Payload: frame}, c.timeout)
	if err != nil {
		return err
	}
	if len(resp.Payload) == 0 {
		fmt.Fprintf(c.out, "no response (%s)\n", resp.Result)
		return nil
	}
	if resp.Result != host.RCOK {
		return fmt.Errorf("%s: %s", host.CmdRDMDUBRequest, resp.Result)
	}
	uid, err := rdm.DecodeDUBResponse(resp.Payload)
	if err != nil {
		fmt.Fprintf(c.out, "collision (%d bytes)\n", len(resp.Payload))
		return nil
	}
	fmt.Fprintf(c.out, "found %s\n", uid)
	return nil
}

func (c *Console) cmdMute(pid rdm.PID, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s <uid>", strings.ToLower(strings.TrimPrefix(pid.String(), "DISC_")))
	}
	dest, err := parseDest(args[0])
	if err != nil {
		return err
	}
	return c.sendRDM(dest, rdm.CommandClassDiscovery, pid, nil)
}

func (c *Console) cmdRDM(cc rdm.CommandClass, args []string) error {
	if len(args) < 2 || (cc == rdm.CommandClassSet && len(args) < 3) {
		return errors.New("usage: get <uid> <pid> [hex] | set <uid> <pid> <hex>")
	}
	dest, err := parseDest(args[0])
	if err != nil {
		return err
	}
	pid, err := rdm.ParsePID(args[1])
	if err != nil {
		return err
	}
	data, err := parseHex(args[2:])
	if err != nil {
		return err
	}
	return c.sendRDM(dest, cc, pid, data)
}

func (c *Console) cmdRaw(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: raw <command> [hex]")
	}
	cmd, ok := host.ParseCommand(strings.ToUpper(args[0]))
	if !ok {
		v, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			return fmt.Errorf("unknown command %q", args[0])
		}
		cmd = host.Command(v)
	}
	payload, err := parseHex(args[1:])
	if err != nil {
		return err
	}
	resp, err := c.link.Transact(host.Message{Command: cmd, Payload: payload}, c.timeout)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s % x\n", resp.Command, resp.Result, resp.Payload)
	return nil
}

// request builds the next request frame from the console's source UID.
func (c *Console) request(dest rdm.UID, cc rdm.CommandClass, pid rdm.PID, data []byte) ([]byte, error) {
	req := rdm.NewRequest(c.src, dest, c.tn, cc, rdm.SubDeviceRoot, pid, data)
	c.tn++
	return req.Encode()
}

func (c *Console) sendRDM(dest rdm.UID, cc rdm.CommandClass, pid rdm.PID, data []byte) error {
	frame, err := c.request(dest, cc, pid, data)
	if err != nil {
		return err
	}
	resp, err := c.link.Transact(host.Message{Command: host.CmdRDMRequest, Payload: frame}, c.timeout)
	if err != nil {
		return err
	}
	switch {
	case resp.Result == host.RCRxTimeout:
		fmt.Fprintln(c.out, "no response")
		return nil
	case resp.Result != host.RCOK:
		return fmt.Errorf("%s: %s", host.CmdRDMRequest, resp.Result)
	case len(resp.Payload) == 0:
		fmt.Fprintln(c.out, "sent")
		return nil
	}

	reply, err := rdm.Decode(resp.Payload)
	if err != nil {
		return fmt.Errorf("bad response frame: %w", err)
	}
	c.printReply(reply)
	return nil
}

func (c *Console) printReply(reply *rdm.Request) {
	switch rt := reply.ResponseType(); rt {
	case rdm.ResponseTypeAck, rdm.ResponseTypeAckOverflow:
		fmt.Fprintf(c.out, "%s %s from %s: % x", rt, reply.PID, reply.Src, reply.Data)
		if printable(reply.Data) {
			fmt.Fprintf(c.out, " %q", reply.Data)
		}
		fmt.Fprintln(c.out)
	case rdm.ResponseTypeAckTimer:
		if len(reply.Data) == 2 {
			fmt.Fprintf(c.out, "ACK_TIMER %s: retry in %d ms\n", reply.PID, int(binary.BigEndian.Uint16(reply.Data))*100)
			return
		}
		fmt.Fprintf(c.out, "ACK_TIMER %s: % x\n", reply.PID, reply.Data)
	case rdm.ResponseTypeNackReason:
		if len(reply.Data) == 2 {
			fmt.Fprintf(c.out, "NACK %s: %s\n", reply.PID, rdm.NackReasonFromWire(binary.BigEndian.Uint16(reply.Data)))
			return
		}
		fmt.Fprintf(c.out, "NACK %s: % x\n", reply.PID, reply.Data)
	default:
		fmt.Fprintf(c.out, "%s %s: % x\n", reply.CommandClass, reply.PID, reply.Data)
	}
}

func parseDest(s string) (rdm.UID, error) {
	if strings.EqualFold(s, "all") {
		return rdm.NewUID(0xffff, 0xffffffff), nil
	}
	return rdm.ParseUID(s)
}

// parseHex joins args and decodes them as hex, e.g. "00 64" or "0064".
func parseHex(args []string) ([]byte, error) {
	s := strings.TrimPrefix(strings.Join(args, ""), "0x")
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad hex data %q", s)
	}
	return b, nil
}

func printable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
