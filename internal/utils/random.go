package utils

import (
	cryptorand "crypto/rand"
	"math/big"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

func GenerateRandomChineseName(rng *rand.Rand) string {
	surname := commonSurnames[rng.Intn(len(commonSurnames))]
	nameLength := rng.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rng.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateUsernameFromChineseName 取每个字拼音的随机前缀，再加上 1~3 位数字
func GenerateUsernameFromChineseName(chineseName string, rng *rand.Rand) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rng.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := rng.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rng.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string, rng *rand.Rand) (*domain.User, error) {
	fullName := GenerateRandomChineseName(rng)
	username := GenerateUsernameFromChineseName(fullName, rng)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleOperator,
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

// GenerateRandomPassword 用于新建账号的初始密码，使用 crypto/rand
func GenerateRandomPassword(length int) string {
	password := make([]rune, length)
	for i := range password {
		n, err := cryptorand.Int(cryptorand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			panic(err)
		}
		password[i] = letters[n.Int64()]
	}
	return string(password)
}

// GenerateRandomCustomers 生成 n 个顾客，ID 从 1 开始，服务时长在 [1, maxDuration] 内
func GenerateRandomCustomers(n int, maxDuration int64, rng *rand.Rand) []domain.Customer {
	customers := make([]domain.Customer, n)
	for i := range customers {
		customers[i] = domain.Customer{
			ID:       int64(i + 1),
			Duration: rng.Int63n(maxDuration) + 1,
		}
	}
	return customers
}
