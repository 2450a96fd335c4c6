package main

import "github.com/thirdweb-dev/ethereum-etl/cmd"

func main() {
	cmd.Execute()
}
