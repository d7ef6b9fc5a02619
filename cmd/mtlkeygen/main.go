// Command mtlkeygen generates a new MTL library key and writes it to a
// file, refusing to overwrite an existing one.
package main

import (
	"flag"
	"fmt"
	"os"

	mtl "github.com/verisign/go-mtl"
)

func main() {
	quiet := flag.Bool("q", false, "suppress informational output")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 || len(args) > 3 {
		fmt.Fprintln(os.Stderr, "usage: mtlkeygen [-q] key_file algorithm [ctx_str]")
		os.Exit(1)
	}
	keyFile, algorithm := args[0], args[1]
	var ctxStr []byte
	if len(args) == 3 {
		ctxStr = []byte(args[2])
	}

	if _, err := os.Stat(keyFile); err == nil {
		fmt.Fprintf(os.Stderr, "ERROR (%s already exists)\n", keyFile)
		os.Exit(1)
	}

	key, err := mtl.KeyNew(algorithm, ctxStr, mtl.HMACSigner{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
		os.Exit(1)
	}

	oldUmask := umask(0177)
	defer umask(oldUmask)
	if err := os.WriteFile(keyFile, key.KeyToBuffer(), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
		os.Exit(1)
	}

	if !*quiet {
		fmt.Printf("wrote %s (%s)\n", keyFile, algorithm)
	}
}
