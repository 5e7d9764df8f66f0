package main

import "github.com/frahmantamala/reputation-management/cmd"

func main() {
	cmd.Execute()
}
