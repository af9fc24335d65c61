package main

import "github.com/allbin/stm32boot/cmd/stm32boot/cmd"

func main() {
	cmd.Execute()
}
