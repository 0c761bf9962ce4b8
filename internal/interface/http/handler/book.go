package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/interface/http/dto"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	catalog *appbook.CatalogService
}

// NewBookHandler 创建图书处理器
func NewBookHandler(catalog *appbook.CatalogService) *BookHandler {
	return &BookHandler{catalog: catalog}
}

// ListBooks 检索图书
// @Summary      检索图书
// @Description  关键词匹配标题、作者、描述中的任一词；genre精确匹配；价格区间闭区间
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        keywords query string false "空格分隔的关键词"
// @Param        minPrice query string false "最低价格"
// @Param        maxPrice query string false "最高价格"
// @Param        genre    query string false "类型"
// @Param        sortBy   query string false "author|title|genre|price|price_desc|year|year_desc"
// @Success      200 {array}  book.Book
// @Failure      401 {object} response.ErrorBody
// @Failure      500 {object} response.ErrorBody
// @Router       /api/v1/books/list [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	books, err := h.catalog.ListBooks(c.Request.Context(), q.ToParams())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, books)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} dto.BookEnvelope
// @Failure      404 {object} response.ErrorBody
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	b, err := h.catalog.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, dto.BookEnvelope{Book: b})
}

// AddBook 新增图书
// @Summary      新增图书
// @Description  需要canAddBook能力；数值字段可以是数字或数字字符串
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      200 {object} response.MessageBody
// @Failure      400 {object} response.ErrorBody "参数错误或未写入"
// @Failure      401 {object} response.ErrorBody "未登录"
// @Failure      403 {object} response.ErrorBody "无权限"
// @Failure      500 {object} response.ErrorBody "存储错误"
// @Router       /api/v1/books/add [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	b := req.ToEntity()
	id, err := h.catalog.AddBook(c.Request.Context(), middleware.Actor(c), b)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.MessageWithID(c, fmt.Sprintf("Book %s added with an id of %s", b.Title, id), id)
}

// UpdateBook 部分更新图书
// @Summary      更新图书
// @Description  需要canEditBook能力；只更新提交的字段
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                true "图书ID"
// @Param        request body dto.UpdateBookRequest true "要修改的字段"
// @Success      200 {object} response.MessageBody
// @Failure      400 {object} response.ErrorBody "未修改或参数错误"
// @Failure      404 {object} response.ErrorBody "ID格式错误"
// @Router       /api/v1/books/update/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateBookRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.catalog.UpdateBook(c.Request.Context(), middleware.Actor(c), id, req.ToPatch()); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, fmt.Sprintf("Book %s is updated", id))
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  需要canDeleteBook能力
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.MessageBody
// @Failure      400 {object} response.ErrorBody "未删除"
// @Failure      404 {object} response.ErrorBody "ID格式错误"
// @Router       /api/v1/books/delete/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id := c.Param("id")
	if err := h.catalog.DeleteBook(c.Request.Context(), middleware.Actor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, fmt.Sprintf("Book %s deleted", id))
}
