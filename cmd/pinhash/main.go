// Command pinhash provisions a step-up PIN for a profile. It reads the PIN
// twice without echo and prints the salt, the digest and the SQL statement
// that stores them.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/flagx"
	"github.com/dmitrijs2005/pinkeeper/internal/pinhash"
	"golang.org/x/term"
)

var errMismatch = errors.New("PINs do not match")

// pinReader returns one PIN entry. Tests replace the terminal reader.
type pinReader func(prompt string) (string, error)

func terminalReader(w io.Writer) pinReader {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		r := bufio.NewReader(os.Stdin)
		return func(string) (string, error) {
			line, err := r.ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				return "", err
			}
			return strings.TrimSpace(line), nil
		}
	}
	return func(prompt string) (string, error) {
		fmt.Fprint(w, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		defer common.WipeByteArray(b)
		return string(b), nil
	}
}

func run(ctx context.Context, args []string, read pinReader, out io.Writer) error {
	var profileID string
	params := pinhash.DefaultParams()

	fs := flag.NewFlagSet("pinhash", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&profileID, "u", "", "profile id to print the UPDATE statement for")
	fs.IntVar(&params.Iterations, "i", params.Iterations, "pbkdf2 iterations")
	fs.IntVar(&params.SaltLength, "n", params.SaltLength, "salt length in bytes")
	fs.IntVar(&params.DigestLength, "k", params.DigestLength, "digest length in bytes")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-u", "-i", "-n", "-k"})); err != nil {
		return err
	}

	h, err := pinhash.New(params)
	if err != nil {
		return err
	}

	pin, err := read("Enter PIN: ")
	if err != nil {
		return err
	}
	if err := pinhash.ValidatePIN(pin); err != nil {
		return err
	}
	confirm, err := read("Repeat PIN: ")
	if err != nil {
		return err
	}
	if pin != confirm {
		return errMismatch
	}

	digest, salt, err := h.Hash(ctx, pin)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "pin_salt: %s\n", salt)
	fmt.Fprintf(out, "pin_hash: %s\n", digest)
	if profileID != "" {
		fmt.Fprintf(out, "\nUPDATE profiles SET pin_hash = '%s', pin_salt = '%s' WHERE id = '%s';\n",
			digest, salt, strings.ReplaceAll(profileID, "'", "''"))
	}
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], terminalReader(os.Stderr), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pinhash:", err)
		os.Exit(1)
	}
}
