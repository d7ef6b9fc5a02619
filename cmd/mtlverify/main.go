// Command mtlverify checks a signature produced by mtlsign against a
// message and a public key. It carries no verification logic of its
// own; it is a thin wrapper over the mtl façade.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	mtl "github.com/verisign/go-mtl"
)

func main() {
	base64Mode := flag.Bool("b", false, "base64 I/O instead of hex")
	ladderFile := flag.String("l", "", "ladder file to trust when verifying a condensed signature")
	quiet := flag.Bool("q", false, "suppress informational output")
	flag.Parse()

	args := flag.Args()
	if len(args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: mtlverify [-b] [-l ladder_file] [-q] algo key_file msg_file sig_file")
		os.Exit(1)
	}
	algorithm, keyFile, msgFile, sigFile := args[0], args[1], args[2], args[3]

	decode := hex.DecodeString
	if *base64Mode {
		decode = base64.StdEncoding.DecodeString
	}

	keyRaw, err := os.ReadFile(keyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
		os.Exit(1)
	}
	pubkey, err := decode(trimNewline(keyRaw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (bad public key encoding: %v)\n", err)
		os.Exit(1)
	}
	msg, err := os.ReadFile(msgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
		os.Exit(1)
	}
	sigRaw, err := os.ReadFile(sigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
		os.Exit(1)
	}
	sig, err := decode(trimNewline(sigRaw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (bad signature encoding: %v)\n", err)
		os.Exit(1)
	}

	var ladderBuf []byte
	if *ladderFile != "" {
		raw, err := os.ReadFile(*ladderFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
			os.Exit(1)
		}
		ladderBuf, err = decode(trimNewline(raw))
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR (bad ladder encoding: %v)\n", err)
			os.Exit(1)
		}
	}

	key, err := mtl.KeyPubkeyFromParams(algorithm, nil, pubkey, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
		os.Exit(1)
	}

	ok, err := key.Verify(msg, sig, ladderBuf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
		os.Exit(1)
	}
	if !ok {
		if !*quiet {
			fmt.Println("BOGUS_CRYPTO")
		}
		os.Exit(1)
	}
	if !*quiet {
		fmt.Println("OK")
	}
}

func trimNewline(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return string(b)
}
