// Command tilemux is the terminal workspace multiplexer's entry point:
// `tilemux attach <session>`, `tilemux kill <session>`, and
// `tilemux list-sessions` drive one session daemon and its clients over
// internal/ipc's control socket.
package main

import "github.com/ambervale/tilemux/internal/cli"

func main() {
	cli.Execute()
}
