package main

import (
	"example.com/polyglot/store"
)

func main() {
	_ = store.New()
}
