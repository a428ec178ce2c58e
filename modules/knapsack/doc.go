// Package knapsack provides optimization modules for the 0/1 knapsack
// problem: a base module with the capacity constraint and profit
// objective, and an optional conflict module forbidding chosen item pairs
// from being packed together.
package knapsack
