package clamav

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const (
	// chunkSize is the maximum number of bytes per INSTREAM chunk
	chunkSize = 64 * 1024

	dialTimeout = 10 * time.Second
	scanTimeout = 5 * time.Minute
)

// Client talks to a clamd daemon over TCP using the INSTREAM command
type Client struct {
	address string
}

// NewClient creates a clamd client for the given host:port address
func NewClient(address string) *Client {
	return &Client{address: address}
}

// Ping checks that clamd is reachable and responding
func (c *Client) Ping() error {
	conn, err := net.DialTimeout("tcp", c.address, dialTimeout)
	if err != nil {
		return fmt.Errorf("clamd dial: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(dialTimeout))
	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("clamd ping: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\x00')
	if err != nil {
		return fmt.Errorf("clamd ping reply: %w", err)
	}
	if !strings.Contains(reply, "PONG") {
		return fmt.Errorf("unexpected clamd ping reply %q", reply)
	}
	return nil
}

// Scan streams data to clamd and reports the detected signature name, or
// an empty string when the stream is clean
func (c *Client) Scan(data io.Reader) (string, error) {
	conn, err := net.DialTimeout("tcp", c.address, dialTimeout)
	if err != nil {
		return "", fmt.Errorf("clamd dial: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(scanTimeout))
	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return "", fmt.Errorf("clamd instream: %w", err)
	}

	// Each chunk is a big-endian length prefix followed by the bytes.
	// A zero-length chunk terminates the stream.
	buf := make([]byte, chunkSize)
	var size [4]byte
	for {
		n, readErr := data.Read(buf)
		if n > 0 {
			binary.BigEndian.PutUint32(size[:], uint32(n))
			if _, err := conn.Write(size[:]); err != nil {
				return "", fmt.Errorf("clamd chunk header: %w", err)
			}
			if _, err := conn.Write(buf[:n]); err != nil {
				return "", fmt.Errorf("clamd chunk: %w", err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", readErr
		}
	}
	if _, err := conn.Write([]byte{0, 0, 0, 0}); err != nil {
		return "", fmt.Errorf("clamd stream end: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\x00')
	if err != nil {
		return "", fmt.Errorf("clamd reply: %w", err)
	}
	return parseReply(reply)
}

// parseReply extracts the signature name from a clamd INSTREAM reply.
// Clean streams answer "stream: OK", detections answer
// "stream: <signature> FOUND".
func parseReply(reply string) (string, error) {
	reply = strings.TrimSpace(strings.Trim(reply, "\x00"))

	if strings.HasSuffix(reply, "OK") {
		return "", nil
	}
	if strings.HasSuffix(reply, "FOUND") {
		sig := strings.TrimSuffix(reply, "FOUND")
		if i := strings.Index(sig, ":"); i >= 0 {
			sig = sig[i+1:]
		}
		return strings.TrimSpace(sig), nil
	}
	return "", fmt.Errorf("unexpected clamd reply %q", reply)
}
