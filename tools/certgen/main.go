// Command certgen writes a development CA and server certificate for
// serving TodoKeeper over TLS.
//
//	certgen -dir certs -hosts localhost,127.0.0.1
//	server -tls-cert certs/server.crt -tls-key certs/server.key
//	todokeeper --url https://localhost:8080 --ca certs/ca.crt todos list
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/TodoKeeper/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs for the server certificate")
	days := fs.Int("days", 365, "validity in days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *days <= 0 {
		return fmt.Errorf("days must be positive, got %d", *days)
	}

	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}

	if err := certgen.WriteBundle(*dir, names, time.Duration(*days)*24*time.Hour); err != nil {
		return err
	}
	fmt.Fprintf(out, "Certificates written to %s\n", *dir)
	return nil
}
