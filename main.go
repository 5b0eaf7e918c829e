/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/dongwook32/web-hub/cmd"

func main() {
	cmd.Execute()
}
