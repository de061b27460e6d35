// SPDX-License-Identifier: MPL-2.0

// enclocate locates the enc executable and checks its version.
package main

import cmd "github.com/enc4idea/enclocate/cmd/enclocate"

func main() {
	cmd.Execute()
}
