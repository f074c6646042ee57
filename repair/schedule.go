package repair

// Schedule 是按尝试序号索引的采样温度序列
type Schedule []float64

// At 返回第 i 次尝试的温度。i 超出序列长度时取最后一个值，
// 负数取第一个值；空序列返回 nil（使用生成模型默认温度）。
func (s Schedule) At(i int) *float64 {
	if len(s) == 0 {
		return nil
	}
	if i < 0 {
		i = 0
	}
	if i >= len(s) {
		i = len(s) - 1
	}
	v := s[i]
	return &v
}
