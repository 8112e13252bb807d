// main.go 是 licext 的程序入口。
// 该文件仅负责注入版本号并执行 Cobra 根命令，
// 让业务逻辑保持在 cmd/internal 目录中，便于测试和扩展。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"licext/cmd"
)

// version 默认值为 dev。
// 发布时可以通过 -ldflags "-X main.version=vX.Y.Z" 覆盖该值。
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.Execute(ctx, version)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "licext error: %v\n", err)
		os.Exit(1)
	}
}
