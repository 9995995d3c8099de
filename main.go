package main

import "github.com/frahmantamala/personnel-records/cmd"

func main() {
	cmd.Execute()
}
