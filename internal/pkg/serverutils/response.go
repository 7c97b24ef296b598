package serverutils

// BaseResponse is the envelope for every JSON body the API returns.
// Success bodies carry Message and Data; error bodies carry Error.
type BaseResponse[T any] struct {
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Message: message,
		Data:    data,
	}
}

// ErrorResponse builds an error body. The status code travels on the
// HTTP line only.
func ErrorResponse(message string) BaseResponse[any] {
	return BaseResponse[any]{
		Error: message,
	}
}
