// Command mtlsign appends one or more messages to a key's node series
// and emits their signatures. It is a thin wrapper over the mtl façade;
// it carries no signing logic of its own.
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
	wantLadder := flag.Bool("l", false, "also emit the signed ladder")
	condensedOnly := flag.Bool("i", false, "emit condensed signatures instead of full signatures")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mtlsign [-b] [-l] [-i] key_file msg_file...")
		os.Exit(1)
	}
	keyFile := args[0]
	msgFiles := args[1:]

	keyBuf, err := os.ReadFile(keyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
		os.Exit(1)
	}
	key, err := mtl.KeyFromBuffer(keyBuf, mtl.HMACSigner{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
		os.Exit(1)
	}

	encode := hex.EncodeToString
	if *base64Mode {
		encode = base64.StdEncoding.EncodeToString
	}

	for _, msgFile := range msgFiles {
		msg, err := os.ReadFile(msgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
			os.Exit(1)
		}
		handle, err := key.SignAppend(msg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
			os.Exit(1)
		}

		var sig []byte
		if *condensedOnly {
			sig, err = key.SignGetCondensedSig(handle)
		} else {
			sig, err = key.SignGetFullSig(handle)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
			os.Exit(1)
		}
		fmt.Println(encode(sig))
	}

	if *wantLadder {
		signedLadder, err := key.SignGetSignedLadder()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR (%v)\n", err)
			os.Exit(1)
		}
		fmt.Println(encode(signedLadder))
	}
}
