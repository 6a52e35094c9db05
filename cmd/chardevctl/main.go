// cmd/chardevctl/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tamzrod/chardev/internal/discovery"
	"github.com/tamzrod/chardev/internal/server"
)

const usage = `usage: chardevctl [flags] <command> [args]

commands:
  echo <text>   write text, read it back (default: "hola")
  write <text>  write text
  read          read the current message
  browse        list nodes advertised over mDNS
`

func main() {
	addr := flag.String("addr", "ws://localhost:8740", "server base URL")
	node := flag.String("node", "mi_char_device", "device node name")
	secret := flag.String("secret", "", "API secret")
	timeout := flag.Duration("timeout", 5*time.Second, "operation timeout")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	os.Exit(run(flag.Args(), *addr, *node, *secret, *timeout))
}

// run returns the exit code so the deferred close always runs.
func run(args []string, addr, node, secret string, timeout time.Duration) int {
	cmd := "echo"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "echo", "write", "read", "browse":
	default:
		flag.Usage()
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if cmd == "browse" {
		if err := browse(ctx); err != nil {
			return fail(err)
		}
		return 0
	}

	c, err := server.Dial(ctx, addr, node, secret)
	if err != nil {
		return fail(err)
	}
	defer c.Close()

	text := "hola"
	if len(args) > 0 {
		text = strings.Join(args, " ")
	}

	switch cmd {
	case "echo":
		if err := send(c, text); err != nil {
			return fail(err)
		}
		if err := receive(c); err != nil {
			return fail(err)
		}
	case "write":
		if err := send(c, text); err != nil {
			return fail(err)
		}
	case "read":
		if err := receive(c); err != nil {
			return fail(err)
		}
	}
	return 0
}

func send(c *server.Client, text string) error {
	n, err := c.Write([]byte(text))
	if err != nil {
		return err
	}
	fmt.Printf("Sent %d bytes...\n", n)
	return nil
}

func receive(c *server.Client) error {
	data, eof, err := c.Read(0)
	if err != nil {
		return err
	}
	if eof {
		fmt.Println("No message (end of file)")
		return nil
	}
	fmt.Printf("Incoming message: %s\n", data)
	return nil
}

func browse(ctx context.Context) error {
	entries, err := discovery.Browse(ctx, "local.")
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no nodes found")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s\t%s%s\n", e.Instance, e.URL(), e.Path)
	}
	return nil
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "chardevctl:", err)
	return 1
}
