package service

import "tush00nka/taskboard/internal/pkg/multipart"

func partOfSize(name string, n int) multipart.Part {
	return multipart.Part{Filename: name, Data: make([]byte, n)}
}
