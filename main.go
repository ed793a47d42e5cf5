package main

import "sitedata/cmd"

func main() {
	cmd.Execute()
}
