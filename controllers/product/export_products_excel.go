package productcontroller

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/catalog"
	"github.com/junaidrashid-git/shop-api/controllers/respond"
)

// GET /api/products/export
func ExportProductsToExcel(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := store.ExportProducts(c.Request.Context())
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	}
}
