// Package main is the entry point for rpcgate.
package main

func main() {
	Execute()
}
