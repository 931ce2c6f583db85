package main

import "github.com/architeacher/markets/services/svc-markets/internal/runtime"

func main() {
	runtime.New().Run()
}
