package util

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// GetCurrentAbPathByExecutable 获取当前执行程序所在的绝对路径
func GetCurrentAbPathByExecutable() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", err
	}
	res, _ := filepath.EvalSymlinks(filepath.Dir(exePath))
	return res, nil
}

// MaskPassword 隐藏密码，只保留首尾各一个字符
func MaskPassword(passwd string) string {
	n := utf8.RuneCountInString(passwd)
	if n <= 2 {
		return strings.Repeat("*", n)
	}

	runes := []rune(passwd)
	return string(runes[0]) + strings.Repeat("*", n-2) + string(runes[n-1])
}
