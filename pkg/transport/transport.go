// Package transport opens the byte stream a print head talks over.
//
// Supported URLs:
//
//	serial:///dev/ttyUSB0?baud=115200
//	tcp://host:port
//	ws://host:port/path
//	listen+tcp://:port
package transport

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/tarm/serial"
	"golang.org/x/net/websocket"
)

// DefaultBaud is the baud rate of the print-head UART.
const DefaultBaud = 115200

// DialTimeout bounds tcp connection setup.
var DialTimeout = 5 * time.Second

// Open opens the stream addressed by rawURL.
func Open(rawURL string) (io.ReadWriteCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid link URL: %v", err)
	}
	switch u.Scheme {
	case "serial":
		conf, err := serialConfig(u)
		if err != nil {
			return nil, err
		}
		port, err := serial.OpenPort(conf)
		if err != nil {
			return nil, fmt.Errorf("open serial port %s: %v", conf.Name, err)
		}
		glog.Infof("serial %s opened at %d baud", conf.Name, conf.Baud)
		return port, nil
	case "tcp":
		return net.DialTimeout("tcp", u.Host, DialTimeout)
	case "ws", "wss":
		return dialWebsocket(u)
	case "listen+tcp":
		ln, err := net.Listen("tcp", u.Host)
		if err != nil {
			return nil, err
		}
		return acceptOne(ln)
	default:
		return nil, fmt.Errorf("unknown link URL scheme: %q", u.Scheme)
	}
}

func serialConfig(u *url.URL) (*serial.Config, error) {
	name := u.Path
	if u.Host != "" {
		name = u.Host + u.Path
	}
	if name == "" {
		return nil, fmt.Errorf("serial device not specified")
	}
	conf := &serial.Config{Name: name, Baud: DefaultBaud}
	if val := u.Query().Get("baud"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil || baud <= 0 {
			return nil, fmt.Errorf("invalid baud rate %q", val)
		}
		conf.Baud = baud
	}
	return conf, nil
}

func dialWebsocket(u *url.URL) (io.ReadWriteCloser, error) {
	origin := "http://" + u.Host
	if u.Scheme == "wss" {
		origin = "https://" + u.Host
	}
	conf, err := websocket.NewConfig(u.String(), origin)
	if err != nil {
		return nil, err
	}
	conn, err := websocket.DialConfig(conf)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}

// acceptOne waits for a single peer and closes ln.
func acceptOne(ln net.Listener) (net.Conn, error) {
	defer ln.Close()
	glog.Infof("waiting for peer on %s", ln.Addr())
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	glog.Infof("peer %s connected", conn.RemoteAddr())
	return conn, nil
}
