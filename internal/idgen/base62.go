package idgen

const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Encode renders a non-negative id in base62. Ids of the same magnitude have
// the same length, so their strings sort in id order.
func Encode(num int64) string {
	if num <= 0 {
		return "0"
	}

	var buf [11]byte
	i := len(buf)
	for num > 0 {
		i--
		buf[i] = base62Chars[num%62]
		num /= 62
	}
	return string(buf[i:])
}
