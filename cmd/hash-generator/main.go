// Command hash-generator produces the bcrypt hash of a validator shared
// secret for use in the auth.validators configuration block.
//
// Usage:
//
//	hash-generator -secret <shared-secret> [-cost 10]
package main

import (
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	secret := flag.String("secret", "", "validator shared secret to hash")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if *secret == "" {
		log.Fatal("usage: hash-generator -secret <shared-secret> [-cost 10]")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*secret), *cost)
	if err != nil {
		log.Fatalf("failed to generate hash: %v", err)
	}

	fmt.Println(string(hash))
}
