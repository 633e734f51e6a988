package rag

import "unicode"

// Piece 一个切块：零基下标 + 内容 + 在原文中的字符 (rune) 偏移
type Piece struct {
	Index     int
	Content   string
	StartChar int
	EndChar   int
}

// Chunker 确定性滑动窗口切块器。
// size 限制单块大小 (embedding 模型输入上限)，overlap 让相邻块
// 在边界处重叠，避免跨块语义被切断。同样输入必然产出同样边界。
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk 切块。空内容产出零块；短于一个窗口的内容产出恰好一块。
// pieces[0].StartChar == 0，最后一块的 EndChar == rune 长度。
func (c *Chunker) Chunk(content string) []Piece {
	runes := []rune(content)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var pieces []Piece
	start := 0
	idx := 0
	for {
		end := start + c.size
		if end >= n {
			end = n
		} else {
			// 尽量在窗口尾部 15% 范围内的空白处断开
			if cut := lastSpaceBefore(runes, start+c.size*17/20, end); cut > start {
				end = cut
			}
		}

		pieces = append(pieces, Piece{
			Index:     idx,
			Content:   string(runes[start:end]),
			StartChar: start,
			EndChar:   end,
		})

		if end >= n {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = start + 1 // 保证窗口前进
		}
		start = next
		idx++
	}
	return pieces
}

// lastSpaceBefore 在 [floor, end) 区间内从后往前找空白，
// 返回断点 (空白之后的位置)；找不到返回 -1
func lastSpaceBefore(runes []rune, floor, end int) int {
	if floor < 0 {
		floor = 0
	}
	for i := end - 1; i >= floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return -1
}
