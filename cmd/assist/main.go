package main

import "github.com/lu-zhengda/assist/internal/cli"

func main() {
	cli.Execute()
}
