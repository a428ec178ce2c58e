// Package instance loads knapsack problem instances from configuration
// files. A Loader parses one format; ForPath picks the loader matching a
// file's extension. The loaded Instance converts into the data values the
// optimization modules consume.
package instance
