// 命令行工具：加载数据目录后执行一次性查询，或将数据目录写入 PostgreSQL 源表
package main

import (
	"geo-registry/cmd/registry-cli/cmd"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cmd.Execute()
}
