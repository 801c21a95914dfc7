package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/thinkfashz/osart/internal/logger"

	"github.com/joho/godotenv"
)

// DefaultEnvFile 默认环境变量文件
const DefaultEnvFile = ".env"

// LoadEnvFiles 预加载 .env 文件，已存在的系统环境变量优先
// 文件缺失时跳过，返回实际加载的文件列表。
func LoadEnvFiles(files ...string) ([]string, error) {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		file = strings.TrimSpace(file)
		if file == "" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debugw("config_env_file_missing", "file", file)
				continue
			}
			return loaded, err
		}
		if err := godotenv.Load(file); err != nil {
			return loaded, err
		}
		logger.Infow("config_env_file_loaded", "file", file)
		loaded = append(loaded, file)
	}
	return loaded, nil
}
