package iptv

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/forgoer/openssl"
)

const keySize = 24

type TripleDESCrypto struct {
	key []byte
}

// AuthInfo 生成Authenticator所需的设备和账号信息
type AuthInfo struct {
	Token  string // 服务器下发的EncryToken
	UserID string
	IMEI   string
	IP     string
	MAC    string
}

// DeriveKey 由登录密码生成3DES密钥：MD5摘要的大写十六进制字符串取前24位
func DeriveKey(password string) string {
	hash := md5.Sum([]byte(password))
	return strings.ToUpper(hex.EncodeToString(hash[:]))[:keySize]
}

// NewTripleDESCrypto 创建新的3DES加密对象
func NewTripleDESCrypto(key string) *TripleDESCrypto {
	return &TripleDESCrypto{
		key: []byte(key),
	}
}

// ECBEncrypt 加密函数，返回大写的十六进制字符串
func (c *TripleDESCrypto) ECBEncrypt(plainText string) (string, error) {
	encrypted, err := openssl.Des3ECBEncrypt([]byte(plainText), c.key, openssl.PKCS7_PADDING)
	if err != nil {
		return "", NewError(ErrCrypto, "3des encrypt", err)
	}

	return strings.ToUpper(hex.EncodeToString(encrypted)), nil
}

// ECBDecrypt 解密函数，输入十六进制字符串，返回明文
func (c *TripleDESCrypto) ECBDecrypt(cipherText string) (string, error) {
	data, err := hex.DecodeString(cipherText)
	if err != nil {
		return "", NewError(ErrDecode, "3des decrypt", err)
	}

	decrypted, err := openssl.Des3ECBDecrypt(data, c.key, openssl.PKCS7_PADDING)
	if err != nil {
		return "", NewError(ErrCrypto, "3des decrypt", err)
	}

	return string(decrypted), nil
}

// AuthPlainText 拼接Authenticator的明文
// 格式：random + "$" + EncryToken + "$" + UserID + "$" + IMEI + "$" + IP + "$" + MAC + "$" + Reserved + "$" + CTC
func AuthPlainText(nonce int, info AuthInfo) string {
	return fmt.Sprintf("%d$%s$%s$%s$%s$%s$$CTC",
		nonce, info.Token, info.UserID, info.IMEI, info.IP, info.MAC)
}

// BuildAuthenticator 使用密码派生的密钥加密生成Authenticator
func BuildAuthenticator(password string, nonce int, info AuthInfo) (string, error) {
	crypto := NewTripleDESCrypto(DeriveKey(password))
	return crypto.ECBEncrypt(AuthPlainText(nonce, info))
}
