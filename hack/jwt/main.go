// Command jwt is a debugging helper for confirming whether a known secret
// literal leaked, base64-encoded, into a captured token (a JWT or any
// other base64-segmented string) — useful when deciding whether a
// fingerprinted match is a true positive before it is published to the
// vault.
package main

import (
	"fmt"
	"os"

	"github.com/cleansh/cleansh/pkg/fingerprint"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run ./hack/jwt <token> <secret_fragment>")
		fmt.Println(`Example: go run ./hack/jwt eyJhbGciOiJSUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig "1234567890"`)
		os.Exit(1)
	}

	token, needle := os.Args[1], os.Args[2]

	found, pattern := fingerprint.FindEncodedFragment(token, needle)
	if found {
		fmt.Printf("found %q base64-encoded in token (pattern: %s)\n", needle, pattern)
		return
	}
	fmt.Printf("%q not found in token\n", needle)
}
