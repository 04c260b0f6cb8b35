package pkg

// Page 一页的窗口信息，供仓储取数和模板渲染使用
type Page struct {
	Number   int
	Size     int
	Total    int64
	NumPages int
}

// Paginate 归一化页码：越界的页码收敛到最近的有效页，空结果集视为一个空页
func Paginate(number, size int, total int64) Page {
	if size <= 0 {
		size = 10
	}
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}
	return Page{Number: number, Size: size, Total: total, NumPages: numPages}
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

func (p Page) HasPrev() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.NumPages }

func (p Page) Prev() int { return p.Number - 1 }

func (p Page) Next() int { return p.Number + 1 }
