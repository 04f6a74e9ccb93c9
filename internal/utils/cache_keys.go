package utils

import "strconv"

// ProductsListCachePrefix is shared by every cached product page so a write
// can drop them all at once.
const ProductsListCachePrefix = "products:list:v1:"

func BuildProductsListCacheKey(limit, offset int) string {
	return ProductsListCachePrefix +
		"limit=" + strconv.Itoa(limit) +
		":offset=" + strconv.Itoa(offset)
}
