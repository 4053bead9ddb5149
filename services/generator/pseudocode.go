// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generator

import (
	"slices"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// pseudocode holds the listing each frame's CodeLine points into.
var pseudocode = map[frames.AlgorithmType][]string{
	frames.LinearSearch: {
		"for i from 0 to length - 1:",
		"  if array[i] == target:",
		"    return i (Found)",
		"return -1 (Not Found)",
	},
	frames.BinarySearch: {
		"left = 0, right = length - 1",
		"while left <= right:",
		"  mid = floor((left + right) / 2)",
		"  if array[mid] == target: return mid",
		"  if array[mid] < target:",
		"    left = mid + 1",
		"  else:",
		"    right = mid - 1",
		"return -1",
	},
	frames.TwoPointers: {
		"left = 0, right = length - 1",
		"while left < right:",
		"  sum = array[left] + array[right]",
		"  if sum == target: return true",
		"  else if sum < target: left++",
		"  else: right--",
		"return false",
	},
	frames.SlidingWindow: {
		"left = 0, sum = 0, best = infinity",
		"for right from 0 to length - 1: sum += array[right]",
		"  while sum >= target: best = min(best, right - left + 1)",
		"    sum -= array[left], left++",
		"return best",
	},
	frames.BubbleSort: {
		"for i from 0 to n - 1:",
		"  swapped = false",
		"  for j from 0 to n - i - 1:",
		"    if array[j] > array[j+1]:",
		"      swap(array[j], array[j+1])",
		"      swapped = true",
		"  if not swapped: break",
	},
	frames.SelectionSort: {
		"for i from 0 to n - 1:",
		"  min_idx = i",
		"  for j from i + 1 to n:",
		"    if array[j] < array[min_idx]:",
		"      min_idx = j",
		"  if min_idx != i:",
		"    swap(array[i], array[min_idx])",
	},
	frames.InsertionSort: {
		"for i from 1 to n:",
		"  key = array[i], j = i - 1",
		"  while j >= 0 and array[j] > key:",
		"    array[j+1] = array[j]",
		"    j = j - 1",
		"  array[j+1] = key",
	},
	frames.MergeSort: {
		"function mergeSort(arr):",
		"  if length <= 1: return",
		"  mid = length / 2",
		"  mergeSort(leftHalf), mergeSort(rightHalf)",
		"  merge(leftHalf, rightHalf)",
	},
	frames.QuickSort: {
		"function quickSort(low, high):",
		"  if low < high:",
		"    pivot = partition(low, high)",
		"    quickSort(low, pivot - 1)",
		"    quickSort(pivot + 1, high)",
	},
	frames.MonotonicStack: {
		"result = [-1] * n, stack = []",
		"for i from 0 to n - 1:",
		"  while stack and array[i] > array[stack.top]:",
		"    result[stack.top] = array[i]",
		"    stack.pop()",
		"  stack.push(i)",
		"return result",
	},
	frames.BFS: {
		"create queue Q, enqueue start_node",
		"mark start_node as visited",
		"while Q is not empty:",
		"  u = Q.dequeue()",
		"  for each neighbor v of u:",
		"    if v is not visited:",
		"      mark v as visited",
		"      Q.enqueue(v)",
	},
	frames.DFS: {
		"function dfs(u):",
		"  mark u as visited",
		"  for each neighbor v of u:",
		"    if v is not visited:",
		"      dfs(v)",
	},
	frames.BellmanFord: {
		"dist[source] = 0, every other dist = infinity",
		"repeat |V| - 1 times:",
		"  for each edge (u, v, w):",
		"    if dist[u] + w < dist[v]: dist[v] = dist[u] + w",
		"  if nothing changed: stop early",
		"for each edge (u, v, w):",
		"  if dist[u] + w < dist[v]: report negative cycle",
		"return dist",
	},
	frames.UnionFind: {
		"parent[i] = i for every i",
		"union(a, b):",
		"  ra = find(a), rb = find(b)",
		"  if ra == rb: return",
		"  parent[ra] = rb",
	},
	frames.LinkedList: {
		"search(value): curr = head",
		"  while curr != null: check curr.value",
		"    if curr.value == value: return curr",
		"  return null",
		"insertAfter(target, value):",
		"  curr = search(target)",
		"  node = new Node(value)",
		"  node.next = curr.next",
		"  curr.next = node",
		"deleteTail():",
		"  prev = node whose next is tail",
		"  prev.next = null",
		"return head",
	},
	frames.Trie: {
		"insert(word): node = root",
		"  for ch in word:",
		"    if ch in node.children: node = node.children[ch]",
		"    else: create child for ch",
		"      node = new child",
		"  node.isEndOfWord = true",
		"search(word): node = root",
		"  for ch in word:",
		"    if ch not in node.children: return false",
		"  return node.isEndOfWord",
	},
	frames.IntervalScheduling: {
		"intervals = input",
		"sort intervals by end time",
		"for each interval in order:",
		"  if start >= lastEnd: select it, lastEnd = end",
		"  else: eliminate it",
		"return selected",
	},
}

// Pseudocode returns the listing for algo, or nil when algo has none
// (Dijkstra and A* frames carry no code line).
func Pseudocode(algo frames.AlgorithmType) []string {
	return slices.Clone(pseudocode[algo])
}
