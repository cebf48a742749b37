// Command admitsim simulates how an operating system admits a batch of
// processes into a fixed amount of memory and runs them to completion.
package main

import "github.com/sarchlab/admitsim/admitsim/cmd"

func main() {
	cmd.Execute()
}
