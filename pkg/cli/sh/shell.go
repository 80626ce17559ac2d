package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/smalldrop/phead.go/pkg/l0/comm"
	"github.com/smalldrop/phead.go/pkg/phead"
	"github.com/smalldrop/phead.go/pkg/transport"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	LinkURL     string
	Timeout     time.Duration

	Shell *ishell.Shell
	Conn  *Conn
}

// Conn is an open link to a print head.
type Conn struct {
	URL    string
	Stream io.ReadWriteCloser
	Host   *phead.Host
	Cancel func()
}

// Close stops the client and closes the stream.
func (c *Conn) Close() error {
	c.Cancel()
	return c.Stream.Close()
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	linkURL    = os.Getenv("PHEAD_LINK_URL")

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&RawCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&linkURL, "link", linkURL, "Link URL to connect, e.g. serial:///dev/ttyUSB0.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(url string) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		LinkURL:     url,
		Timeout:     comm.DefaultReplyTimeout,

		Shell: ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// CommandFunc issues one command through host.
type CommandFunc func(ctx context.Context, host *phead.Host) (interface{}, error)

// DoCommand runs a command and prints the result, nil result prints OK.
func DoCommand(c *ishell.Context, fn CommandFunc) error {
	s := ShellFrom(c)
	if s.Conn == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout+time.Second)
	defer cancel()
	res, err := fn(ctx, s.Conn.Host)
	if err != nil {
		c.Err(err)
		return err
	}
	s.Print(c, res)
	return nil
}

// Print prints a command result.
func (s *Shell) Print(c *ishell.Context, res interface{}) {
	if s.OutputJSON {
		if res == nil {
			res = map[string]bool{"ok": true}
		}
		out, err := json.Marshal(res)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	switch r := res.(type) {
	case nil:
		c.Println("OK")
	case comm.Result:
		for _, w := range r.Warnings {
			c.Printf("warning: %s\n", w)
		}
		if r.IsOK() {
			c.Println("OK")
		} else {
			c.Printf("% x\n", r.Data)
		}
	case []comm.ErrorCode:
		for _, w := range r {
			c.Printf("warning: %s\n", w)
		}
		c.Println("OK")
	default:
		c.Printf("%+v\n", res)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens a link to a print head.
func (s *Shell) Connect(url string) error {
	stream, err := transport.Open(url)
	if err != nil {
		return err
	}
	client := comm.NewClient(stream)
	client.Timeout = s.Timeout
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := client.Run(ctx); err != nil && ctx.Err() == nil && s.Interactive {
			s.Shell.Printf("link %s closed: %v\n", url, err)
		}
	}()
	s.Disconnect()
	s.Conn = &Conn{URL: url, Stream: stream, Host: phead.NewHost(client), Cancel: cancel}
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", url))
	return nil
}

// Disconnect disconnects current print head.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.LinkURL != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.LinkURL)
		}
		if err := s.Connect(s.LinkURL); err != nil {
			log.Fatalf("connect %q failed: %v", s.LinkURL, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// ParseBytes parses arguments as bytes, decimal or 0x prefixed hex.
func ParseBytes(args []string) ([]byte, error) {
	out := make([]byte, 0, len(args))
	for _, arg := range args {
		val, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q", arg)
		}
		out = append(out, byte(val))
	}
	return out, nil
}

// ParseUint16 parses a 16-bit argument.
func ParseUint16(arg string) (uint16, error) {
	val, err := strconv.ParseUint(arg, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", arg)
	}
	return uint16(val), nil
}

var (
	// ConnectCmd connects a print head.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "URL",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			url := s.LinkURL
			if len(c.Args) > 0 {
				url = c.Args[0]
			}
			if url == "" {
				c.Err(fmt.Errorf("URL required"))
				return
			}
			if err := s.Connect(url); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current print head.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// RawCmd sends an arbitrary payload.
	RawCmd = ishell.Cmd{
		Name: "raw",
		Help: "GROUP CODE [ARGS...]",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("payload required"))
				return
			}
			payload, err := ParseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			DoCommand(c, func(ctx context.Context, host *phead.Host) (interface{}, error) {
				return host.Client.Do(ctx, payload...)
			})
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(strings.TrimSpace(linkURL)).WithAutoConnect(true).Run(flag.Args()...)
}
