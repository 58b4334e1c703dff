package handler

import (
	"Keystone/internal/service"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindQuery 绑定查询参数并按 validate 标签校验
func bindQuery(c *gin.Context, obj any) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return bindError(err)
	}
	return validate.Struct(obj)
}

// bindJSON 绑定请求体并按 validate 标签校验
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindError(err)
	}
	return validate.Struct(obj)
}

// bindError 校验错误原样返回，其余绑定错误归为参数错误
func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return err
	}
	return fmt.Errorf("%w: %v", service.ErrParamInvalid, err)
}

func paramUint64(c *gin.Context, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, service.ErrParamInvalid
	}
	return v, nil
}
